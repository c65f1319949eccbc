// Package manifest loads declarative pipeline definitions from HCL
// files and builds runnable aipype pipelines from them. A manifest
// declares pipeline blocks holding task blocks; each task names a
// registered runner, carries static config attributes, and wires its
// inputs from other tasks' results by dotted source paths.
package manifest
