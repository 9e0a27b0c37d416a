// File: utils/constants.go
package utils

// TravelCachePrefix is the prefix used for Redis travel cache keys.
const TravelCachePrefix = "travel:"

// GeoCachePrefix is the prefix used for Redis geocode cache keys.
const GeoCachePrefix = "geo:"

// NegotiationPrefix is the prefix used for Redis negotiation keys.
const NegotiationPrefix = "negotiation:"
