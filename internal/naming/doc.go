// Package naming derives test identities and display names.
//
// Identities are name-based UUIDs (SHA-1) computed from the closed class and
// method names, the formatted class and method arguments, the data source
// indices and the repeat index. The same declaration therefore yields the
// same identity on every run.
//
// Display names default to Method(arg, ...). A method may declare a Go
// text/template instead; templates are rendered with the sprig function set
// and the fields .Class, .Method, .Args, .ClassArgs, .Params and .Repeat.
// Referencing a field that does not exist is an error.
package naming
