// Package chunksink contains the core types of Chunksink, a library which bridges
// partitioned tabular data and an external columnar chunk store. This root package
// defines the types which are employed during regular use of the library, as well
// as in the extension of the library, and is an excellent overview of Chunksink's
// key concepts: datasets, write modes, row sources and the store coordinator.
package chunksink
