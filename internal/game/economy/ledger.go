// Package economy holds the integer currency counters that gate unit and
// building creation.
package economy

// Ledger tracks one side's resources. Spending operations never go below
// zero; an unaffordable request is rejected without changing state.
type Ledger struct {
	Money      int `msgpack:"money"`
	Lives      int `msgpack:"lives"`
	Score      int `msgpack:"score"`
	Minerals   int `msgpack:"minerals"`
	SupplyUsed int `msgpack:"supply_used"`
	SupplyMax  int `msgpack:"supply_max"`
}

// CanAfford reports whether cost money is available.
func (l *Ledger) CanAfford(cost int) bool { return cost >= 0 && l.Money >= cost }

// TrySpend deducts cost money if affordable.
//
// Postcondition: Returns false and leaves l unchanged when cost exceeds Money.
func (l *Ledger) TrySpend(cost int) bool {
	if !l.CanAfford(cost) {
		return false
	}
	l.Money -= cost
	return true
}

// Earn adds n money. Non-positive amounts are ignored.
func (l *Ledger) Earn(n int) {
	if n > 0 {
		l.Money += n
	}
}

// AddScore adds n points.
func (l *Ledger) AddScore(n int) { l.Score += n }

// LoseLives removes n lives, flooring at zero, and returns the remainder.
func (l *Ledger) LoseLives(n int) int {
	if n > 0 {
		l.Lives = max(0, l.Lives-n)
	}
	return l.Lives
}

// CanTrain reports whether minerals and supply cover a unit.
func (l *Ledger) CanTrain(minerals, supply int) bool {
	return l.Minerals >= minerals && l.SupplyUsed+supply <= l.SupplyMax
}

// TryTrain deducts minerals and reserves supply for one unit.
//
// Postcondition: Returns false and leaves l unchanged when either resource
// is short.
func (l *Ledger) TryTrain(minerals, supply int) bool {
	if !l.CanTrain(minerals, supply) {
		return false
	}
	l.Minerals -= minerals
	l.SupplyUsed += supply
	return true
}

// Release returns supply held by a dead unit.
func (l *Ledger) Release(supply int) {
	l.SupplyUsed = max(0, l.SupplyUsed-supply)
}

// Deposit adds gathered minerals.
func (l *Ledger) Deposit(n int) {
	if n > 0 {
		l.Minerals += n
	}
}
