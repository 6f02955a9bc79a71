// Package utils provides small helpers shared by the store packages: lenient
// scalar coercion for record values, string shortening for human readable
// output and a JSON encoder that leaves slashes and unicode unescaped.
package utils
