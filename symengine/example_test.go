package symengine_test

import (
	"encoding/json"
	"fmt"

	"github.com/ardnew/symsubst/symengine"
)

func ExampleExpressionMap_Eval() {
	m := symengine.NewExpressionMap[string]()
	defer m.Close()

	m.Insert("a", symengine.From(3))
	m.Insert("b", symengine.From(-4))

	fmt.Println(m.Eval(symengine.MustParse("a*b + 10")))
	fmt.Println(m)
	// Output:
	// -2
	// map[a:3 b:-4]
}

func ExampleExpressionMap_UnmarshalJSON() {
	var m symengine.ExpressionMap[string]
	defer m.Close()

	if err := json.Unmarshal([]byte(`{"r": 2, "h": "5"}`), &m); err != nil {
		fmt.Println(err)

		return
	}

	fmt.Println(m.Keys(), m.Len())
	// Output: [h r] 2
}

func ExampleParse() {
	_, err := symengine.Parse("a +")
	fmt.Println(err != nil)
	// Output: true
}
