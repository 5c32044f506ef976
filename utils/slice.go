package utils

// UniqueUint removes duplicate values from a slice of uints.
func UniqueUint(slice []uint) []uint {
	seen := make(map[uint]bool)
	list := []uint{}
	for _, entry := range slice {
		if !seen[entry] {
			seen[entry] = true
			list = append(list, entry)
		}
	}
	return list
}
