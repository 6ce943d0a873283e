package limitcycle_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestLimitCycle(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Limit Cycle Suite")
}
