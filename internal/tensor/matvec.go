package tensor

// VecMat computes dst = x·w where x has w.R entries and dst has w.C entries.
// Rows whose input coefficient is zero are skipped, which makes one-hot
// inputs cost one row read per active position.
func VecMat(dst []float32, x []float32, w *Mat) {
	if len(x) != w.R {
		panic("vecmat: input length mismatch")
	}
	if len(dst) != w.C {
		panic("vecmat: output length mismatch")
	}
	for j := range dst {
		dst[j] = 0
	}
	for i, xi := range x {
		if xi == 0 {
			continue
		}
		AddScaled(dst, w.Row(i), xi)
	}
}
