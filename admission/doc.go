// SPDX-License-Identifier: EPL-2.0

// Package admission bounds how many extractions decode at the same time.
//
// A Controller holds a fixed number of permits and a FIFO queue. Submitted
// jobs are started in submission order while permits are free; a job gives
// its permit back with Release once it reaches a terminal state:
//
//	c := admission.New()
//	c.Configure(2)
//
//	c.Submit(job, nil)
//	...
//	c.Release(job) // from the job's completion path
package admission
