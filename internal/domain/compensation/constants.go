package compensation

const (
	DefaultBasicShare  = 0.5
	DefaultHRAShare    = 0.5
	DefaultPFShare     = 0.12
	DefaultProfTaxYear = 2400
)
