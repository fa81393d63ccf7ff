package errors_test

import (
	"fmt"

	"github.com/ossmap/ossmap/pkg/errors"
)

func ExampleNew() {
	err := errors.New(errors.CodeSchema, "node table missing columns: %v", []string{"Licenses"})

	fmt.Println(err)
	fmt.Println(errors.Is(err, errors.CodeSchema))
	fmt.Println(errors.GetCode(err))
	// Output:
	// SCHEMA_ERROR: node table missing columns: [Licenses]
	// true
	// SCHEMA_ERROR
}

func ExampleWrap() {
	cause := fmt.Errorf("strconv.ParseFloat: parsing %q: invalid syntax", "heavy")
	err := errors.Wrap(errors.CodeTypeCoercion, cause, "row 3: column %q", "weight")

	fmt.Println(err)
	// Output:
	// TYPE_COERCION: row 3: column "weight": strconv.ParseFloat: parsing "heavy": invalid syntax
}
