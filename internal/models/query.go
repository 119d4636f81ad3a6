package models

// Operation is the logical name of a market data request.
// It drives TTL rules and metric labels, and is not part of the cache key.
type Operation string

const (
	OperationTopCoins        Operation = "top_coins"
	OperationCoin            Operation = "coin"
	OperationGlobal          Operation = "global"
	OperationSearch          Operation = "search"
	OperationHistory         Operation = "history"
	OperationHistoryIntraday Operation = "history_intraday"
	OperationPrices          Operation = "prices"
)

// Shape is the structurally expected form of an upstream response body
type Shape string

const (
	ShapeArray    Shape = "array"    // bare JSON array
	ShapeObject   Shape = "object"   // bare JSON object
	ShapeEnvelope Shape = "envelope" // {"data": ...}, unwrapped before caching
)

// Query describes one upstream GET request
type Query struct {
	Operation Operation
	Endpoint  string            // path relative to the provider base URL
	Params    map[string]string // serialized in sorted order for the cache key
	Shape     Shape
}
