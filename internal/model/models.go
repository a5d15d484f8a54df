package model

// All lists every persisted record in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Session{},
		&Template{},
		&Question{},
		&Response{},
		&Answer{},
	}
}
