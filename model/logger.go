package model

import (
	"github.com/sirupsen/logrus"
)

var logger = logrus.WithFields(logrus.Fields{"prefix": "model"})

func SetLogger(l *logrus.Entry) {
	logger = l
}
