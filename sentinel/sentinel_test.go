package sentinel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolarization(t *testing.T) {
	polarization, err := Polarization("MMM_BB_TTTR_1SDH_YYYYMMDDTHHMMSS_YYYYMMDDTHHMMSS_OOOOOO_DDDDDD_CCCC.SAFE.zip")
	assert.Nil(t, err)
	assert.Equal(t, "HH", polarization)

	polarization, err = Polarization("MMM_BB_TTTR_1SSH_YYYYMMDDTHHMMSS_YYYYMMDDTHHMMSS_OOOOOO_DDDDDD_CCCC.SAFE.zip")
	assert.Nil(t, err)
	assert.Equal(t, "HH", polarization)

	polarization, err = Polarization("MMM_BB_TTTR_2SSV_YYYYMMDDTHHMMSS_YYYYMMDDTHHMMSS_OOOOOO_DDDDDD_CCCC.SAFE.zip")
	assert.Nil(t, err)
	assert.Equal(t, "VV", polarization)
}

func TestPolarizations(t *testing.T) {
	all, err := Polarizations("MMM_BB_TTTR_1SDV_YYYYMMDDTHHMMSS_YYYYMMDDTHHMMSS_OOOOOO_DDDDDD_CCCC.SAFE.zip")
	assert.Nil(t, err)
	assert.Equal(t, []string{"VV", "VH"}, all)

	all, err = Polarizations("MMM_BB_TTTR_1SSV_YYYYMMDDTHHMMSS_YYYYMMDDTHHMMSS_OOOOOO_DDDDDD_CCCC.SAFE.zip")
	assert.Nil(t, err)
	assert.Equal(t, []string{"VV"}, all)
}

func TestPolarization_Errors(t *testing.T) {
	_, err := Polarization("tooshort")
	assert.NotNil(t, err)

	_, err = Polarization("MMM_BB_TTTR_1XXX_YYYYMMDDTHHMMSS_YYYYMMDDTHHMMSS_OOOOOO_DDDDDD_CCCC.SAFE.zip")
	assert.NotNil(t, err)
}

func TestTimestamps_Sentinel1(t *testing.T) {
	start, err := StartTimestamp("S1M_BB_TTTR_LFPP_20200113T074619_20200113T002219_OOOOOO_DDDDDD_CCCC.SAFE.zip")
	assert.Nil(t, err)
	assert.Equal(t, "20200113T074619", start)

	stop, err := StopTimestamp("S1M_BB_TTTR_LFPP_20200113T074619_20200113T002219_OOOOOO_DDDDDD_CCCC.SAFE.zip")
	assert.Nil(t, err)
	assert.Equal(t, "20200113T002219", stop)
}

func TestTimestamps_Sentinel2(t *testing.T) {
	start, err := StartTimestamp("S2AM_MSIXXX_20200113T074619_Nxxyy_ROOO_Txxxxx_PD.SAFE")
	assert.Nil(t, err)
	assert.Equal(t, "20200113T074619", start)

	// start and stop are the same field for Sentinel-2 names
	stop, err := StopTimestamp("S2AM_MSIXXX_20200113T074619_Nxxyy_ROOO_Txxxxx_PD.SAFE")
	assert.Nil(t, err)
	assert.Equal(t, "20200113T074619", stop)
}

func TestTimestamps_Sentinel3(t *testing.T) {
	start, err := StartTimestamp("S3M_OL_L_TTT____20200113T074619_20200113T002219_YYYYMMDDTHHMMSS_i_GGG_c.SEN3")
	assert.Nil(t, err)
	assert.Equal(t, "20200113T074619", start)

	stop, err := StopTimestamp("S3M_OL_L_TTT____20200113T074619_20200113T002219_YYYYMMDDTHHMMSS_i_GGG_c.SEN3")
	assert.Nil(t, err)
	assert.Equal(t, "20200113T002219", stop)
}

func TestTimestamps_Errors(t *testing.T) {
	_, err := StartTimestamp("LC08_L1TP_193024_20200509_20200519_01_T1")
	assert.NotNil(t, err, "Landsat products have no Sentinel timestamp")

	_, err = StartTimestamp("S1M_BB")
	assert.NotNil(t, err)

	_, err = StopTimestamp("S3M_OL")
	assert.NotNil(t, err)
}
