package domain

// Neighbor is a KNN hit: a product id with its similarity in [0,1],
// already mapped from raw index distance.
type Neighbor struct {
	ProductID  string
	Similarity float64
}
