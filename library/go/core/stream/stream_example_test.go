package stream_test

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yandex/streamtool/library/go/core/stream"
)

func ExampleLengthLimitedInput() {
	src := stream.NewCountingInput(stream.AsInput(strings.NewReader("HelloWorld")))

	for {
		chunk := stream.NewLengthLimitedInput(src, 4)
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, chunk); err != nil {
			panic(err)
		}
		if buf.Len() == 0 {
			break
		}
		fmt.Printf("%q ", buf.String())
	}
	fmt.Println(src.Counter())

	// Output: "Hell" "oWor" "ld" 10
}

func ExampleCountingOutput() {
	var buf bytes.Buffer
	w := stream.NewCountingOutput(&buf)

	fmt.Fprint(w, "foo")
	fmt.Fprint(w, "bar")
	fmt.Println(buf.String(), w.Counter())

	// Output: foobar 6
}
