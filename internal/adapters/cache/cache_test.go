package cache_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/valuator/internal/adapters/cache"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCache(t *testing.T) {
	ctx := context.Background()

	Convey("Given a bounded cache", t, func() {
		c := cache.New[int](cache.WithMaxSize(2))

		Convey("A stored value is returned", func() {
			c.Put(ctx, "a", 1)
			v, ok := c.Get(ctx, "a")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 1)
			So(c.Len(), ShouldEqual, 1)
		})

		Convey("A missing key reports a miss", func() {
			v, ok := c.Get(ctx, "nope")
			So(ok, ShouldBeFalse)
			So(v, ShouldEqual, 0)
		})

		Convey("Overwriting keeps the size", func() {
			c.Put(ctx, "a", 1)
			c.Put(ctx, "a", 2)
			v, _ := c.Get(ctx, "a")
			So(v, ShouldEqual, 2)
			So(c.Len(), ShouldEqual, 1)
		})

		Convey("The least recently used entry is evicted first", func() {
			c.Put(ctx, "a", 1)
			c.Put(ctx, "b", 2)
			c.Put(ctx, "c", 3)
			_, ok := c.Get(ctx, "a")
			So(ok, ShouldBeFalse)
			_, ok = c.Get(ctx, "c")
			So(ok, ShouldBeTrue)
			So(c.Len(), ShouldEqual, 2)
		})

		Convey("Reading an entry keeps it over a newer one", func() {
			c.Put(ctx, "a", 1)
			c.Put(ctx, "b", 2)
			c.Get(ctx, "a")
			c.Put(ctx, "c", 3)
			_, ok := c.Get(ctx, "a")
			So(ok, ShouldBeTrue)
			_, ok = c.Get(ctx, "b")
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given an unbounded cache", t, func() {
		c := cache.New[string](cache.WithMaxSize(0))
		for i := 0; i < 100; i++ {
			c.Put(ctx, fmt.Sprint(i), "v")
		}
		So(c.Len(), ShouldEqual, 100)
	})

	Convey("Given concurrent writers", t, func() {
		c := cache.New[int](cache.WithMaxSize(50))
		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					c.Put(ctx, fmt.Sprintf("%d-%d", g, i), i)
					c.Get(ctx, fmt.Sprintf("%d-%d", g, i))
				}
			}(g)
		}
		wg.Wait()
		So(c.Len(), ShouldEqual, 50)
	})
}

func TestFingerprint(t *testing.T) {
	Convey("Given request parts", t, func() {
		a, err := cache.Fingerprint("catalog", map[string]int{"x": 1})
		So(err, ShouldBeNil)
		b, _ := cache.Fingerprint("catalog", map[string]int{"x": 1})
		c, _ := cache.Fingerprint("catalog", map[string]int{"x": 2})

		So(a, ShouldEqual, b)
		So(a, ShouldNotEqual, c)
		So(len(a), ShouldEqual, 64)

		_, err = cache.Fingerprint(func() {})
		So(err, ShouldNotBeNil)
	})
}
