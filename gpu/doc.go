// Package gpu wraps OpenGL object handles.
//
// Each wrapper owns exactly one native object: the constructor allocates it
// and Delete (or the final Release for shared objects) frees it exactly once.
// Wrappers are handled by pointer and never copied. Setup methods bind the
// object, run a configuration callback and unbind again, so no object stays
// bound after construction.
package gpu
