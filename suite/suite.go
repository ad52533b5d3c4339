// Package suite defines the sequential-container workloads: random access,
// iteration, growth at either end, draining and in-place edits while
// iterating.
package suite

import (
	"container/list"
	"math/rand/v2"
	"time"

	"github.com/weiihann/seqbench/config"
	"github.com/weiihann/seqbench/timing"
	"github.com/weiihann/seqbench/workload"
)

var (
	containerAxis = workload.Axis{
		Name:   "container",
		Values: []string{Slice, List, Deque, ArrayList, LinkedList},
	}

	sizeAxis = workload.Axis{
		Name:   "size",
		Values: []string{"100", "1000", "10000", "100000"},
	}

	editContainerAxis = workload.Axis{
		Name:   "container",
		Values: []string{Slice, List},
	}

	editSizeAxis = workload.Axis{
		Name:   "size",
		Values: []string{"100", "1000", "10000"},
	}
)

func containerSettings() config.Overrides {
	return config.Overrides{
		ForkCount:             config.Int(1),
		WarmupIterations:      config.Int(1),
		WarmupTime:            config.Duration(time.Second),
		MeasurementIterations: config.Int(2),
		MeasurementTime:       config.Duration(time.Second),
		Unit:                  config.UnitOf(timing.Microseconds),
	}
}

func editSettings() config.Overrides {
	o := containerSettings()
	o.ForkCount = config.Int(0)

	return o
}

// Workloads returns every workload of the suite in registration order.
func Workloads() []workload.Spec {
	access := []workload.Spec{
		workload.New("get", setupFilled, bodyGet, containerAxis, sizeAxis).
			WithDescription("read the middle element"),
		workload.New("iterate", setupFilled, bodyIterate, containerAxis, sizeAxis).
			WithDescription("sum all elements with native iteration"),
		workload.New("indexed-loop", setupFilled, bodyIndexedLoop, containerAxis, sizeAxis).
			WithDescription("sum all elements by index"),
		workload.New("append", setupEmpty, bodyAppend, containerAxis, sizeAxis).
			WithDescription("build a container of size elements at the back"),
		workload.New("prepend", setupEmpty, bodyPrepend, containerAxis, sizeAxis).
			WithDescription("build a container of size elements at the front"),
		workload.New("drain-front", setupEmpty, bodyDrainFront, containerAxis, sizeAxis).
			WithDescription("build a container then remove from the front until empty"),
	}

	for i := range access {
		access[i] = access[i].WithSettings(containerSettings())
	}

	edits := []workload.Spec{
		workload.New("iterator-remove", setupTemplate, bodyIteratorRemove, editContainerAxis, editSizeAxis).
			WithDescription("copy a template and remove every element while iterating"),
		workload.New("iterator-insert", setupTemplate, bodyIteratorInsert, editContainerAxis, editSizeAxis).
			WithDescription("copy a template and insert after every element while iterating"),
	}

	for i := range edits {
		edits[i] = edits[i].WithSettings(editSettings())
	}

	return append(access, edits...)
}

// Register adds the suite to reg.
func Register(reg *workload.Registry) error {
	for _, spec := range Workloads() {
		if err := reg.Register(spec); err != nil {
			return err
		}
	}

	return nil
}

// Registry returns a registry holding only the suite.
func Registry() *workload.Registry {
	reg := workload.NewRegistry()
	reg.MustRegister(Workloads()...)

	return reg
}

type state struct {
	size  int
	fresh func() sequence
	seq   sequence
	index int
	sink  int
}

func setupEmpty(c workload.Combination) (*state, error) {
	size, err := c.Int("size")
	if err != nil {
		return nil, err
	}

	container, _ := c.Value("container")

	f, err := factory(container)
	if err != nil {
		return nil, err
	}

	return &state{size: size, fresh: f, index: size / 2}, nil
}

func setupFilled(c workload.Combination) (*state, error) {
	s, err := setupEmpty(c)
	if err != nil {
		return nil, err
	}

	s.seq = s.fresh()
	for range s.size {
		s.seq.PushBack(rand.Int())
	}

	return s, nil
}

func bodyGet(s *state) {
	s.sink = s.seq.At(s.index)
}

func bodyIterate(s *state) {
	s.sink = s.seq.Sum()
}

func bodyIndexedLoop(s *state) {
	total := 0
	for i := 0; i < s.seq.Len(); i++ {
		total += s.seq.At(i)
	}

	s.sink = total
}

func bodyAppend(s *state) {
	seq := s.fresh()
	for i := range s.size {
		seq.PushBack(i)
	}

	s.sink = seq.Len()
}

func bodyPrepend(s *state) {
	seq := s.fresh()
	for i := range s.size {
		seq.PushFront(i)
	}

	s.sink = seq.Len()
}

func bodyDrainFront(s *state) {
	seq := s.fresh()
	for i := range s.size {
		seq.PushBack(i)
	}

	total := 0
	for {
		v, ok := seq.PopFront()
		if !ok {
			break
		}

		total += v
	}

	s.sink = total
}

// editState holds an immutable template copied by every invocation.
type editState struct {
	container string
	slice     []int
	list      *list.List
	sink      int
}

func setupTemplate(c workload.Combination) (*editState, error) {
	size, err := c.Int("size")
	if err != nil {
		return nil, err
	}

	container, _ := c.Value("container")
	s := &editState{container: container}

	switch container {
	case Slice:
		s.slice = make([]int, size)
		for i := range s.slice {
			s.slice[i] = i
		}
	case List:
		s.list = list.New()
		for i := range size {
			s.list.PushBack(i)
		}
	default:
		return nil, &unsupportedError{container: container}
	}

	return s, nil
}

func bodyIteratorRemove(s *editState) {
	if s.container == Slice {
		xs := append([]int(nil), s.slice...)
		for len(xs) > 0 {
			xs = append(xs[:0], xs[1:]...)
		}

		s.sink = len(xs)

		return
	}

	l := list.New()
	l.PushBackList(s.list)

	for e := l.Front(); e != nil; {
		next := e.Next()
		l.Remove(e)
		e = next
	}

	s.sink = l.Len()
}

func bodyIteratorInsert(s *editState) {
	if s.container == Slice {
		xs := append([]int(nil), s.slice...)
		for i := 0; i < len(xs); i += 2 {
			xs = append(xs, 0)
			copy(xs[i+2:], xs[i+1:])
			xs[i+1] = 0
		}

		s.sink = len(xs)

		return
	}

	l := list.New()
	l.PushBackList(s.list)

	for e := l.Front(); e != nil; e = e.Next() {
		e = l.InsertAfter(0, e)
	}

	s.sink = l.Len()
}

type unsupportedError struct {
	container string
}

func (e *unsupportedError) Error() string {
	return "container " + e.container + " has no positional iterator"
}
