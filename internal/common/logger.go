package common

import (
	"github.com/sirupsen/logrus"
)

// Logger is used by every package of the module. It defaults to the logrus
// standard logger.
var Logger = logrus.StandardLogger()
