package interfaces

import "net/http"

//go:generate mockgen -package=mock -source=http_doer.go -destination=mock/http_doer.go

// HTTPDoer sends upstream HTTP requests; *http.Client satisfies it
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}
