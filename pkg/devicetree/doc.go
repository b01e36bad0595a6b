// Package devicetree maintains the indexed device graph for a planning
// session: add/remove with leaf protection, id/name/kind lookup, and
// ancestor/dependent traversal over parent and membership edges.
package devicetree
