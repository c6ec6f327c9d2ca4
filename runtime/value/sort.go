package value

// MergeSort is a stable bottom-up merge sort over value slices. The
// comparator reports whether a must come after b; it may fail, which
// aborts the sort.
func MergeSort(items []*Value, swap func(a, b *Value) (bool, error)) ([]*Value, error) {
	if len(items) <= 1 {
		return items, nil
	}

	src := append([]*Value(nil), items...)
	dst := make([]*Value, len(items))

	for width := 1; width < len(src); width *= 2 {
		for lo := 0; lo < len(src); lo += 2 * width {
			mid := min(lo+width, len(src))
			hi := min(lo+2*width, len(src))
			if err := merge(dst[lo:hi], src[lo:mid], src[mid:hi], swap); err != nil {
				return nil, err
			}
		}
		src, dst = dst, src
	}

	return src, nil
}

func merge(out, left, right []*Value, swap func(a, b *Value) (bool, error)) error {
	i, j := 0, 0
	for k := range out {
		switch {
		case i >= len(left):
			out[k] = right[j]
			j++
		case j >= len(right):
			out[k] = left[i]
			i++
		default:
			after, err := swap(left[i], right[j])
			if err != nil {
				return err
			}
			if after {
				out[k] = right[j]
				j++
			} else {
				out[k] = left[i]
				i++
			}
		}
	}
	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
