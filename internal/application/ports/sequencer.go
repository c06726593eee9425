package ports

import "sync"

// Sequencer ordena trabajo que corre fuera del candado de un libro. El turno se toma con el
// candado del libro tomado (Ticket) y el trabajo espera su turno ya sin él (Run), de modo que
// las escrituras al diario salen en el mismo orden que los comandos sin bloquear las lecturas.
// Todo turno tomado debe consumirse con Run. El valor cero está listo para usarse.
type Sequencer struct {
	mu      sync.Mutex
	cond    *sync.Cond
	next    uint64
	serving uint64
}

// Ticket reserva el siguiente turno.
func (s *Sequencer) Ticket() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.next
	s.next++
	return t
}

// Run espera el turno t, ejecuta fn y cede el turno al siguiente.
func (s *Sequencer) Run(t uint64, fn func()) {
	s.mu.Lock()
	if s.cond == nil {
		s.cond = sync.NewCond(&s.mu)
	}
	for s.serving != t {
		s.cond.Wait()
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.serving++
		s.cond.Broadcast()
		s.mu.Unlock()
	}()
	fn()
}
