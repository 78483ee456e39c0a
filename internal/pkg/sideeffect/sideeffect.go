package sideeffect

import (
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

// Run ejecuta un efecto secundario de mejor esfuerzo: si falla se registra
// y se continúa, nunca se aborta la operación principal. Todo efecto no
// transaccional (borrar un objeto en S3, emitir una alerta secundaria,
// empujar por websocket) pasa por aquí en lugar de tragarse errores inline.
func Run(log *logrus.Logger, name string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(logrus.Fields{
				"effect": name,
				"panic":  r,
				"stack":  string(debug.Stack()),
			}).Error("pánico en efecto secundario")
		}
	}()

	if err := fn(); err != nil {
		log.WithFields(logrus.Fields{
			"effect": name,
			"error":  err.Error(),
		}).Warn("efecto secundario fallido, se continúa")
	}
}

// Go ejecuta el efecto en una goroutine propia con recuperación de pánico.
func Go(log *logrus.Logger, name string, fn func() error) {
	go Run(log, name, fn)
}
