package types

// Serializer is implemented by values that flatten into an ordered list of
// elements, such as a public instance into field elements.
type Serializer[T any] interface {
	Serialize() []T
}
