package chainspec

import "testing"

func TestEthereumProfile(t *testing.T) {
	r := Ethereum(1)
	if r.ChainID != 1 {
		t.Fatalf("chain id = %d, want 1", r.ChainID)
	}
	if r.L1MessageEnabled || r.WithdrawRootEnabled || r.NullBlockHashProvider || r.EuclidV2 {
		t.Fatalf("Ethereum() set an L2-only flag: %+v", r)
	}
}

func TestScrollL2Profile(t *testing.T) {
	r := ScrollL2(534352, false)
	if !r.L1MessageEnabled || !r.WithdrawRootEnabled || !r.NullBlockHashProvider {
		t.Fatalf("ScrollL2() missing a required L2 flag: %+v", r)
	}
	if r.EuclidV2 {
		t.Fatal("EuclidV2 true when caller requested legacy pipeline")
	}

	r2 := ScrollL2(534352, true)
	if !r2.EuclidV2 {
		t.Fatal("EuclidV2 false when caller requested it")
	}
}

func TestCurieOracleRewriteDefaultsNil(t *testing.T) {
	if ScrollL2(1, false).CurieOracleRewrite != nil {
		t.Fatal("CurieOracleRewrite should default to nil")
	}
}
