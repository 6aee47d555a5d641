// File: utils/constants.go
package utils

import "time"

// AuthSessionPrefix is the prefix used for Redis auth session keys.
const AuthSessionPrefix = "authSession:"

// QueryCachePrefix namespaces cached Estuary API reads.
const QueryCachePrefix = "query:"

// HealthCheckInterval is how often backing stores are pinged.
const HealthCheckInterval = 60 * time.Second
