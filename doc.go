// Package ecms gets raw instrument exports into memory: it opens local or
// Google Cloud Storage files, undoes any compression, and reads delimited
// text into series.
package ecms
