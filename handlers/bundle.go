package handlers

// HandlerBundle aggregates handlers for route registration.
type HandlerBundle struct {
	Dispatch    *DispatchHandler
	Negotiation *NegotiationHandler
	Geo         *GeoHandler
}
