// Package flowdef defines the wire-level payload for a flow definition: the
// vertex and edge records produced by the authoring layer. It is the single
// input format of graph construction; the YAML/JSON loader in this package
// and the HCL loader in hcldef both translate into it.
package flowdef
