// Package synth wraps the external clip synthesis command used to render one
// video take per invocation.
package synth
