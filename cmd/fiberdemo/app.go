package main

import (
	"fmt"
	"slices"

	"github.com/AnatoleLucet/fiber"
)

type todo struct {
	ID   int
	Text string
	Done bool
}

type action struct {
	kind string // add, toggle, remove, reverse, theme
	id   int
	text string
}

type todoState struct {
	items  []todo
	nextID int
	theme  string
}

func reduce(s todoState, a action) todoState {
	items := slices.Clone(s.items)

	switch a.kind {
	case "add":
		s.nextID++
		items = append(items, todo{ID: s.nextID, Text: a.text})
	case "toggle":
		for i := range items {
			if items[i].ID == a.id {
				items[i].Done = !items[i].Done
			}
		}
	case "remove":
		items = slices.DeleteFunc(items, func(t todo) bool { return t.ID == a.id })
	case "reverse":
		slices.Reverse(items)
	case "theme":
		s.theme = a.text
	}

	s.items = items
	return s
}

var themeContext = fiber.NewContext("light")

// controls lets the script drive the app from outside the tree.
type controls struct {
	dispatch fiber.Dispatch[action]
	ready    bool
}

func todoApp(props fiber.Props) any {
	ctl := props["controls"].(*controls)

	state, dispatch := fiber.UseReducer(reduce, todoState{theme: "light"})

	fiber.UseLayoutEffect(func() func() {
		ctl.dispatch = dispatch
		ctl.ready = true
		return func() { ctl.ready = false }
	}, fiber.Deps())

	items := make([]any, 0, len(state.items))
	for _, t := range state.items {
		items = append(items, fiber.H(todoItem, fiber.Props{"key": t.ID, "todo": t}))
	}

	return themeContext.Provider(state.theme,
		fiber.H("section", fiber.Props{"id": "app"},
			fiber.H(header, fiber.Props{"count": len(state.items)}),
			fiber.H("ul", fiber.Props{"id": "list"}, items),
		),
	)
}

func header(props fiber.Props) any {
	theme := fiber.UseContext(themeContext)
	count := props["count"].(int)

	title := fiber.UseMemo(func() string {
		return fmt.Sprintf("%d todos", count)
	}, fiber.Deps(count))

	return fiber.H("h1", fiber.Props{"id": "title", "class": theme}, title)
}

func todoItem(props fiber.Props) any {
	t := props["todo"].(todo)

	class := "open"
	if t.Done {
		class = "done"
	}

	return fiber.H("li", fiber.Props{"id": t.ID, "class": class}, t.Text)
}
