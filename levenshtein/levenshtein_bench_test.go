package levenshtein

import "testing"

var Dist int

func BenchmarkDistance64(b *testing.B) {
	b.StopTimer()

	s1 := "Cras enim velit"
	s2 := "Cras enim velit"

	b.StartTimer()

	for i := 0; i < b.N; i++ {
		Dist = Distance(s1, s2)
	}
}

func BenchmarkDistance(b *testing.B) {
	b.StopTimer()

	s1 := "Cras enim velit, vehicula nec viverra at, elementum non augue. Praesent pulvinar mi volutpat enim blandit, vitae porta urna aliquam."
	s2 := "Cras enim velit, vehicula nec viverra at, elementum non augue. Praesent pulvinar mi volutpat enim blandit, vitae porta urna aliquam."

	b.StartTimer()

	for i := 0; i < b.N; i++ {
		Dist = Distance(s1, s2)
	}
}
