package crunchyroll

import "fmt"

const HomeURL = "https://crunchyroll.com"

// Reader page.
const (
	XPathErrorBanner = `//p[contains(text(), 'We are sorry. A team of shinobi is working to bring your anime back. Thank you for your patience.')]`
	XPathReader      = `//*[@id='manga_reader']`
	XPathScrollBar   = `/html/body/div[2]/div/div[1]/section/div/article/header/div/input`
	XPathSlots       = `//ol/li`
	XPathNextButton  = `//a[contains(@class, 'js-next-link')]`
	XPathReaderTitle = `//header[@class='chapter-header']//a`
)

// Series page.
const (
	XPathMoreInfo  = `//h3[contains(text(), 'More Information')]`
	XPathInfoLines = `/html/body/div[2]/div/div[1]/div[3]/div/div[3]/ul/li[3]/ul/li`
	XPathChapters  = `//div[contains(@class, 'collection-carousel-scrollable')]//a[contains(@class, 'block-link')]`
	XPathCover     = `//img[contains(@class, 'poster')]`
)

// Login.
const (
	XPathProfileMenu   = `/html/body/div[1]/div/div[1]/div[1]/div[3]/ul/li[4]/div/div[1]`
	XPathLoginLink     = `//h5[contains(text(), 'Log In')]`
	XPathCookieDecline = `//*[@id='_evidon-decline-button']`
	XPathUsername      = `//input[@name='username']`
	XPathPassword      = `//input[@name='password']`
	XPathLoginButton   = `//button[contains(text(), 'LOG IN')]`
	XPathLogout        = `//span[contains(text(), 'Log Out')]`
)

// XPathCarouselArrow is the left or right arrow of the chapter carousel.
func XPathCarouselArrow(side string) string {
	return fmt.Sprintf(`//a[contains(@class, 'collection-carousel-%sarrow')]`, side)
}
