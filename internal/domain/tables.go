package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	// Catalog
	&Product{},
	// Checkout
	&Payment{},
	&PaymentSession{},
}
