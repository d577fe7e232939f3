package vault

import (
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// gitDates derives per-file created/modified timestamps from the vault's git
// history: the first commit touching a file is its creation time, the most
// recent its modification time. Built once per Source open; lookups are map
// hits afterwards.
type gitDates struct {
	created  map[string]time.Time
	modified map[string]time.Time
}

func openGitDates(root string) (*gitDates, error) {
	repo, err := git.PlainOpen(root)
	if err != nil {
		return nil, err
	}
	ref, err := repo.Head()
	if err != nil {
		return nil, err
	}
	cIter, err := repo.Log(&git.LogOptions{From: ref.Hash()})
	if err != nil {
		return nil, err
	}

	dates := &gitDates{
		created:  make(map[string]time.Time),
		modified: make(map[string]time.Time),
	}

	// Log iterates newest-first: the first time we see a file is its latest
	// touch, every later sighting pushes the creation time further back.
	err = cIter.ForEach(func(c *object.Commit) error {
		stats, sErr := c.Stats()
		if sErr != nil {
			return nil // unreadable commit, skip
		}
		when := c.Author.When
		for _, stat := range stats {
			if _, seen := dates.modified[stat.Name]; !seen {
				dates.modified[stat.Name] = when
			}
			dates.created[stat.Name] = when
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return dates, nil
}

// lookup returns the derived (created, modified) pair for a vault-relative
// path, ok=false when the file has no git history.
func (g *gitDates) lookup(rel string) (time.Time, time.Time, bool) {
	modified, ok := g.modified[rel]
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	created, ok := g.created[rel]
	if !ok {
		created = modified
	}
	return created, modified, true
}
