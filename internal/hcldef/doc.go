// Package hcldef loads flow definitions written in HCL. It is the
// human-authored counterpart to the YAML/JSON codec in flowdef: vertex and
// edge blocks decode into the same definition payloads, so a flow can be
// authored either way and the graph never knows the difference.
package hcldef
