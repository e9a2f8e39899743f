package apperr

type Kind string

type AppError struct {
	Kind      Kind
	PublicMsg string            // message safe to show to the client
	Fields    map[string]string // optional per-field binding errors
	Err       error             // internal cause, logged only
}
