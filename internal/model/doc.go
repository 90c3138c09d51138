// Package model defines shared data types used across the alpha dashboard.
//
// Conventions:
//   - Prices and quantities: decimal strings exactly as the exchange reports
//     them (parsed into floats only for derived display metrics)
//   - Timestamps: int64 milliseconds since Unix epoch
//   - IDs: int64 aggregate trade IDs for ticks, string IDs for admin records
package model
