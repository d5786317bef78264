package sequence_test

import (
	"fmt"

	"github.com/matzehuels/seqflow/pkg/sequence"
)

func ExampleParse() {
	src := `sequenceDiagram
    participant C as Client
    C->>S: GET /orders
    activate S
    S-->>C: 200 OK
    Note over C,S: done`

	d, err := sequence.Parse(src)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	for _, a := range d.Actors {
		fmt.Printf("actor %s (%s)\n", a.ID, a.DisplayLabel())
	}
	for _, m := range d.Messages {
		fmt.Printf("%-10s %s -> %s: %s\n", m.Kind, m.From, m.To, m.Text)
	}
	// Output:
	// actor C (Client)
	// actor S (S)
	// request    C -> S: GET /orders
	// activation S -> S: Activate
	// response   S -> C: 200 OK
	// note       C -> S: done
}

func ExampleIsFormatError() {
	_, err := sequence.Parse("graph TD\n  A --> B")
	fmt.Println(sequence.IsFormatError(err))
	fmt.Println(err)
	// Output:
	// true
	// INVALID_FORMAT: missing "sequenceDiagram" header: first non-empty line is "graph TD"
}
