// Package component describes what a selectable component can do.
//
// A component exposes named interfaces in two roles: accepting interfaces
// are slots that receive a handle from a neighbour, providing interfaces
// hand out such handles. The selection engine only ever talks to components
// through these tagged interfaces and through criterion evaluation, so
// concrete component types never leak into the network code.
package component
