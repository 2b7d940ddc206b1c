// Package export copies vault notes into the flat export tree and drives the
// export, index and run log stages of a pipeline run.
package export
