package expression

// Environment maps variable names to integer values. One Environment lives
// for a whole interpreter session.
type Environment struct {
	values map[string]int
}

// NewEnvironment creates an empty Environment.
func NewEnvironment() *Environment {
	return &Environment{values: make(map[string]int)}
}

// Get returns the value bound to name.
func (e *Environment) Get(name string) (int, bool) {
	v, ok := e.values[name]
	return v, ok
}

// Set binds name to v, creating or overwriting the binding.
func (e *Environment) Set(name string, v int) {
	e.values[name] = v
}

// IsDefined reports whether name has a binding.
func (e *Environment) IsDefined(name string) bool {
	_, ok := e.values[name]
	return ok
}

// Clear drops every binding.
func (e *Environment) Clear() {
	e.values = make(map[string]int)
}

// Len returns the number of bound variables.
func (e *Environment) Len() int {
	return len(e.values)
}
