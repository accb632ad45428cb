// Package parammap reconciles a supplied argument row with a parameter
// signature.
//
// The rules, applied once per row before generic resolution:
//
//   - a signature without parameters always receives an empty row
//   - when lengths match and the last parameter is variadic, a last value that
//     is not already a slice is wrapped into a one-element slice
//   - missing trailing values are filled from defaults when every missing
//     parameter is optional, otherwise the row is rejected
//   - excess values are packed into a trailing variadic parameter when each is
//     assignable to its element type, otherwise the row is truncated
package parammap
