package memory

import "sync"

// Panel holds the last markup written to the recently viewed container.
type Panel struct {
	mu   sync.Mutex
	html string
	sets int
}

func (p *Panel) SetHTML(html string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.html = html
	p.sets++
}

func (p *Panel) HTML() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.html
}

// Writes reports how many times the panel was written.
func (p *Panel) Writes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sets
}
