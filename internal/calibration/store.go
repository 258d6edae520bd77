package calibration

import (
	"sync"

	"github.com/rs/zerolog"
)

// Store is the in-memory, mutex-protected map of device id to Calibration,
// backed by a Persister for durability. Persistence failures are
// non-fatal: the in-memory update is never rolled back, the failure is
// only logged.
type Store struct {
	mu        sync.Mutex
	records   map[string]Calibration
	persister Persister
	defaultCT CircleType
	log       zerolog.Logger
}

// NewStore creates a Store backed by persister, reloading any previously
// persisted records immediately. defaultCircleType is used when Get is
// called for a device with no record.
func NewStore(persister Persister, defaultCircleType CircleType, log zerolog.Logger) (*Store, error) {
	s := &Store{
		records:   make(map[string]Calibration),
		persister: persister,
		defaultCT: defaultCircleType,
		log:       log,
	}
	loaded, err := persister.LoadAll()
	if err != nil {
		return nil, err
	}
	for id, c := range loaded {
		s.records[id] = c
	}
	return s, nil
}

// Get returns the current record for deviceID, or a freshly initialised
// default (using defaultCircleType) without persisting it.
func (s *Store) Get(deviceID string) (Calibration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.records[deviceID]; ok {
		return c, nil
	}
	return Fresh(deviceID, s.defaultCT)
}

// Exists reports whether deviceID has an explicit record, without the
// defaulting Get performs. SetCentre uses this to distinguish "never
// configured" from "configured with the default circle type", since only
// the former should fail its precondition check.
func (s *Store) Exists(deviceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[deviceID]
	return ok
}

// Put writes c to the in-memory map and persists it asynchronously.
// Persistence failure is surfaced only as a logged warning; the in-memory
// update stands regardless.
func (s *Store) Put(c Calibration) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.records[c.DeviceID] = c
	s.mu.Unlock()

	go func() {
		if err := s.persister.Save(c); err != nil {
			s.log.Warn().Err(err).Str("device_id", c.DeviceID).Msg("calibration persistence failure")
		}
	}()
	return nil
}

// Reset deletes the record from memory and persistent storage.
func (s *Store) Reset(deviceID string) error {
	s.mu.Lock()
	delete(s.records, deviceID)
	s.mu.Unlock()
	if err := s.persister.Delete(deviceID); err != nil {
		s.log.Warn().Err(err).Str("device_id", deviceID).Msg("calibration delete failure")
	}
	return nil
}

// SetCircleType creates a fresh Calibration with the target radius for t,
// discarding any prior state.
func (s *Store) SetCircleType(deviceID string, t CircleType) (Calibration, error) {
	fresh, err := Fresh(deviceID, t)
	if err != nil {
		return Calibration{}, err
	}
	if err := s.Put(fresh); err != nil {
		return Calibration{}, err
	}
	return fresh, nil
}
