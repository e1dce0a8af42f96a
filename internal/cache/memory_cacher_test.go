package cache

import (
	"testing"
	"github.com/stretchr/testify/suite"
)

func TestMemoryCacher(t *testing.T) {
	suite.Run(t, &CacherSuite{
		cacher: NewMemoryCacher(),
	})
}
