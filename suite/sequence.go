package suite

import (
	"container/list"
	"fmt"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/lists/doublylinkedlist"
	"github.com/gammazero/deque"
)

// Container names accepted on the "container" axis.
const (
	Slice      = "slice"
	List       = "list"
	Deque      = "deque"
	ArrayList  = "arraylist"
	LinkedList = "linkedlist"
)

// sequence is the common surface the container workloads measure.
type sequence interface {
	Len() int
	At(i int) int
	// Sum adds every element using the container's native iteration.
	Sum() int
	PushBack(v int)
	PushFront(v int)
	PopFront() (int, bool)
}

var factories = map[string]func() sequence{
	Slice:      func() sequence { return &sliceSeq{} },
	List:       func() sequence { return &listSeq{l: list.New()} },
	Deque:      func() sequence { return &dequeSeq{} },
	ArrayList:  func() sequence { return &arrayListSeq{l: arraylist.New()} },
	LinkedList: func() sequence { return &linkedListSeq{l: doublylinkedlist.New()} },
}

func factory(container string) (func() sequence, error) {
	f, ok := factories[container]
	if !ok {
		return nil, fmt.Errorf("unknown container %q", container)
	}

	return f, nil
}

type sliceSeq struct {
	s []int
}

func (q *sliceSeq) Len() int     { return len(q.s) }
func (q *sliceSeq) At(i int) int { return q.s[i] }

func (q *sliceSeq) Sum() int {
	total := 0
	for _, v := range q.s {
		total += v
	}

	return total
}

func (q *sliceSeq) PushBack(v int) { q.s = append(q.s, v) }

func (q *sliceSeq) PushFront(v int) {
	q.s = append(q.s, 0)
	copy(q.s[1:], q.s)
	q.s[0] = v
}

// PopFront shifts the remaining elements down, keeping the backing array.
func (q *sliceSeq) PopFront() (int, bool) {
	if len(q.s) == 0 {
		return 0, false
	}

	v := q.s[0]
	copy(q.s, q.s[1:])
	q.s = q.s[:len(q.s)-1]

	return v, true
}

type listSeq struct {
	l *list.List
}

func (q *listSeq) Len() int { return q.l.Len() }

// At walks from whichever end is closer.
func (q *listSeq) At(i int) int {
	if i < q.l.Len()/2 {
		e := q.l.Front()
		for ; i > 0; i-- {
			e = e.Next()
		}

		return e.Value.(int)
	}

	e := q.l.Back()
	for j := q.l.Len() - 1; j > i; j-- {
		e = e.Prev()
	}

	return e.Value.(int)
}

func (q *listSeq) Sum() int {
	total := 0
	for e := q.l.Front(); e != nil; e = e.Next() {
		total += e.Value.(int)
	}

	return total
}

func (q *listSeq) PushBack(v int)  { q.l.PushBack(v) }
func (q *listSeq) PushFront(v int) { q.l.PushFront(v) }

func (q *listSeq) PopFront() (int, bool) {
	e := q.l.Front()
	if e == nil {
		return 0, false
	}

	return q.l.Remove(e).(int), true
}

type dequeSeq struct {
	d deque.Deque[int]
}

func (q *dequeSeq) Len() int     { return q.d.Len() }
func (q *dequeSeq) At(i int) int { return q.d.At(i) }

func (q *dequeSeq) Sum() int {
	total := 0
	for i := 0; i < q.d.Len(); i++ {
		total += q.d.At(i)
	}

	return total
}

func (q *dequeSeq) PushBack(v int)  { q.d.PushBack(v) }
func (q *dequeSeq) PushFront(v int) { q.d.PushFront(v) }

func (q *dequeSeq) PopFront() (int, bool) {
	if q.d.Len() == 0 {
		return 0, false
	}

	return q.d.PopFront(), true
}

type arrayListSeq struct {
	l *arraylist.List
}

func (q *arrayListSeq) Len() int { return q.l.Size() }

func (q *arrayListSeq) At(i int) int {
	v, _ := q.l.Get(i)
	return v.(int)
}

func (q *arrayListSeq) Sum() int {
	total := 0
	it := q.l.Iterator()
	for it.Next() {
		total += it.Value().(int)
	}

	return total
}

func (q *arrayListSeq) PushBack(v int)  { q.l.Add(v) }
func (q *arrayListSeq) PushFront(v int) { q.l.Insert(0, v) }

func (q *arrayListSeq) PopFront() (int, bool) {
	v, ok := q.l.Get(0)
	if !ok {
		return 0, false
	}

	q.l.Remove(0)

	return v.(int), true
}

type linkedListSeq struct {
	l *doublylinkedlist.List
}

func (q *linkedListSeq) Len() int { return q.l.Size() }

func (q *linkedListSeq) At(i int) int {
	v, _ := q.l.Get(i)
	return v.(int)
}

func (q *linkedListSeq) Sum() int {
	total := 0
	it := q.l.Iterator()
	for it.Next() {
		total += it.Value().(int)
	}

	return total
}

func (q *linkedListSeq) PushBack(v int)  { q.l.Add(v) }
func (q *linkedListSeq) PushFront(v int) { q.l.Prepend(v) }

func (q *linkedListSeq) PopFront() (int, bool) {
	v, ok := q.l.Get(0)
	if !ok {
		return 0, false
	}

	q.l.Remove(0)

	return v.(int), true
}
