package atomicfloat

import (
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFloat64_ConcurrentAdds(t *testing.T) {
	Convey("Given an AtomicFloat64 touched by many goroutines", t, func() {
		f := NewFloat64(0)
		const goroutines = 64
		const addsEach = 100

		Convey("When every goroutine adds 1.0 a fixed number of times", func() {
			var wg sync.WaitGroup
			for i := 0; i < goroutines; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < addsEach; j++ {
						f.Add(1.0)
					}
				}()
			}
			wg.Wait()

			Convey("Then the final value reflects every add", func() {
				So(f.Load(), ShouldEqual, float64(goroutines*addsEach))
			})
		})
	})
}

func TestFloat64_StoreOverwritesInitialValue(t *testing.T) {
	Convey("Given an AtomicFloat64 initialized to a nonzero value", t, func() {
		f := NewFloat64(42)

		Convey("When Store sets a new value", func() {
			f.Store(7)

			Convey("Then Load reflects the stored value", func() {
				So(f.Load(), ShouldEqual, 7.0)
			})
		})
	})
}
