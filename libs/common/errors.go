package common

import (
	"fmt"
)

// PanicCrisis ...
// A panic here means something has gone horribly wrong, in the form of data corruption or
// failure of the operating system. In a correct/healthy system, these should never fire.
// If they do, it's indicative of a much more serious problem.
func PanicCrisis(v interface{}) {
	panic(fmt.Sprintf("Panicked on a Crisis: %v", v))
}
