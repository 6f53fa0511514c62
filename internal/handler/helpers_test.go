package handler_test

import "rar-studio/internal/config"

func testTwilioConfig() config.TwilioConfig {
	return config.TwilioConfig{}
}

func testSendGridConfig() config.SendGridConfig {
	return config.SendGridConfig{Transport: config.TransportAPI}
}
