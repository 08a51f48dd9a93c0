package usecases

import decodepay "github.com/nbd-wtf/ln-decodepay"

// SetDecodeInvoice swaps the bolt11 decoder for tests and returns a restore
// func.
func SetDecodeInvoice(f func(string) (decodepay.Bolt11, error)) (restore func()) {
	prev := decodeInvoice
	decodeInvoice = f
	return func() { decodeInvoice = prev }
}
