package tinybasic

// cmdLet binds a variable to the value of an expression.
func (b *TinyBASIC) cmdLet(s *Let) error {
	v, err := b.eval(s.Value)
	if err != nil {
		return err
	}
	b.env.Set(s.Var, v)
	return nil
}

// cmdClear deletes the program and every variable.
func (b *TinyBASIC) cmdClear() {
	b.program.Clear()
	b.env.Clear()
}
