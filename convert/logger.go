package convert

import (
	"github.com/sirupsen/logrus"
)

var logger = logrus.WithFields(logrus.Fields{"prefix": "convert"})

func SetLogger(l *logrus.Entry) {
	logger = l
}
