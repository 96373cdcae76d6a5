package entity

// Issuer datos de la distribuidora impresos en la cabecera de los recibos.
type Issuer struct {
	Name    string
	Address string
	Phone   string
}
