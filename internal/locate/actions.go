package locate

import "time"

// Action primitives. Each attempts one interaction and absorbs any
// fault into a boolean outcome; the caller decides whether a miss is
// soft or hard. A nil element counts as a miss.

func TryClick(el Element, timeout time.Duration) bool {
	if el == nil {
		return false
	}
	return el.Click(timeout) == nil
}

func TryFill(el Element, value string, timeout time.Duration) bool {
	if el == nil {
		return false
	}
	return el.Fill(value, timeout) == nil
}

func TryCheck(el Element, timeout time.Duration) bool {
	if el == nil {
		return false
	}
	return el.Check(timeout) == nil
}
