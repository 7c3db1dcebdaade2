package memdrv

import (
	"container/list"
	"time"

	"github.com/ngicks/go-fsys-helper/drvfs/driver"
)

// node is a file or a directory.
// All fields are guarded by the owning Driver's mutex.
type node struct {
	name   string
	attrib driver.Attr
	date   uint16
	time   uint16

	// content of a file.
	content []byte

	// entries and entryMap of a directory hold same objects.
	// entries keeps insertion order so ReadDir is not randomly ordered.
	entries  *list.List
	entryMap map[string]*list.Element

	// readers and writers count open objects for the sharing lock.
	readers int
	writers int
}

func newFile(name string, now time.Time) *node {
	n := &node{name: name, attrib: driver.AM_ARC}
	n.touch(now)
	return n
}

func newDir(name string, now time.Time) *node {
	n := &node{
		name:     name,
		attrib:   driver.AM_DIR,
		entries:  list.New(),
		entryMap: make(map[string]*list.Element),
	}
	n.touch(now)
	return n
}

func (n *node) isDir() bool {
	return n.attrib.Dir()
}

func (n *node) touch(now time.Time) {
	n.date = driver.PackDate(now)
	n.time = driver.PackTime(now)
}

func (n *node) open() bool {
	return n.readers > 0 || n.writers > 0
}

func (n *node) info() driver.FileInfo {
	return driver.FileInfo{
		Size:   uint64(len(n.content)),
		Date:   n.date,
		Time:   n.time,
		Attrib: n.attrib,
		Name:   []byte(n.name),
	}
}

func (n *node) lookup(name string) (*node, bool) {
	ele, ok := n.entryMap[name]
	if !ok {
		return nil, false
	}
	return ele.Value.(*node), true
}

func (n *node) add(child *node) {
	n.entryMap[child.name] = n.entries.PushBack(child)
}

func (n *node) remove(name string) {
	ele := n.entryMap[name]
	delete(n.entryMap, name)
	if ele != nil {
		n.entries.Remove(ele)
	}
}

func (n *node) len() int {
	return n.entries.Len()
}

// snapshot lists the entries in insertion order.
func (n *node) snapshot() []driver.FileInfo {
	infos := make([]driver.FileInfo, 0, n.entries.Len())
	for ele := n.entries.Front(); ele != nil; ele = ele.Next() {
		infos = append(infos, ele.Value.(*node).info())
	}
	return infos
}

func (n *node) contains(other *node) bool {
	if n == other {
		return true
	}
	if !n.isDir() {
		return false
	}
	for ele := n.entries.Front(); ele != nil; ele = ele.Next() {
		if ele.Value.(*node).contains(other) {
			return true
		}
	}
	return false
}
