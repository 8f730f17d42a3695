package testdata

import "time"

type Product struct {
	ID        int64     `crud:"id"`
	Name      string    `crud:"name,edit,search"`
	Price     float64   `crud:"price,edit,type=currency"`
	Status    string    `crud:"status,edit,type=select,options=active|archived"`
	Secret    string    `crud:"secret_code,edit,hidden,type=password"`
	CreatedAt time.Time `crud:"created_at,readonly"`
	Internal  string
}

type ignored struct {
	Note string `json:"note"`
}
