package item

import (
	"io/fs"
	"sort"
)

type entryList []fs.DirEntry

func (list entryList) Len() int {
	return len(list)
}

func (list entryList) Less(i, j int) bool {
	return list[i].Name() < list[j].Name()
}

func (list entryList) Swap(i, j int) {
	list[i], list[j] = list[j], list[i]
}

func sortEntries(dents []fs.DirEntry) {
	sort.Sort(entryList(dents))
}
