package serverutils

// ErrorBody is the JSON shape of every error response. The kind is a
// stable machine-readable category; detail is for humans.
type ErrorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func ErrorResponse(kind, detail string) ErrorBody {
	return ErrorBody{
		Error: detail,
		Kind:  kind,
	}
}
