package accounts

import "time"

// Ganchos solo para tests del paquete accounts_test.

func SetBcryptCost(s *Service, cost int) { s.bcryptCost = cost }

func SetNow(s *Service, now func() time.Time) { s.now = now }
