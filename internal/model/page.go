// Package model defines the data transfer objects exchanged with the back-office API.
package model

// Page is the uniform pagination envelope returned by list endpoints.
type Page[T any] struct {
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
	Count    int     `json:"count"`
}

// HasNext reports whether another page can be fetched.
func (p Page[T]) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}

// IDs is the request body of every bulk endpoint.
type IDs struct {
	IDs []int `json:"ids"`
}

// CountResponse is returned by bulk and batch endpoints that report affected rows.
type CountResponse struct {
	Count int `json:"count"`
}
